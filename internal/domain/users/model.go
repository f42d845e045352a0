package users

import "time"

type User struct {
	ID                 int64
	TelegramID         int64
	Username           string
	FullName           string
	Phone              string
	Email              string
	SuccessfulBookings int
	FirstJoinTime      time.Time
	RegDate            *time.Time
}

// ProfileComplete — регистрация закончена, когда заполнены ФИО, телефон и email.
func (u User) ProfileComplete() bool {
	return u.FullName != "" && u.Phone != "" && u.Email != ""
}
