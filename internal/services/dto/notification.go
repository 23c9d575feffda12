package dto

type NotificationListQuery struct {
	ListQuery
	UnreadOnly bool `form:"unreadOnly"`
}
