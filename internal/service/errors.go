package service

// NotFoundError reports that a referenced account or message does not exist.
// Message says which one.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// AlreadyExistsError reports that a write would break a uniqueness constraint.
type AlreadyExistsError struct {
	Message string
}

func (e *AlreadyExistsError) Error() string {
	return e.Message
}

var (
	ErrAccountNotFound    = &NotFoundError{Message: "account not found"}
	ErrMessageNotFound    = &NotFoundError{Message: "message not found"}
	ErrEmailAlreadyExists = &AlreadyExistsError{Message: "email already exists"}
)
