package models

import "time"

const NoticeTypeAlert = "alert"

type Notice struct {
	ID        string
	TaskID    string
	TaskTitle string
	Text      string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}
