package common

import "errors"

// Общие ошибки для всех репозиториев
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	// ErrStaleState возвращается, когда compare-and-set не нашёл строку в
	// ожидаемом статусе: запись изменена параллельной операцией.
	ErrStaleState = errors.New("entity state changed concurrently")
)
