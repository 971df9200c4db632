package domain

type SessionStore interface {
	Put(s *Session)
	Get(userID int64) (*Session, error)
	Delete(userID int64)
	SetEditField(userID int64, field EditField)
	EditField(userID int64) (EditField, bool)
	ClearEditField(userID int64)
}
