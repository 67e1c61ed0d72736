package entities

import (
	"sort"
	"strings"
)

// FormErrors сопоставляет имя поля формы с упорядоченным списком сообщений.
type FormErrors map[string][]string

// Add добавляет сообщение к полю.
func (f FormErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty сообщает, что ошибок нет.
func (f FormErrors) Empty() bool {
	return len(f) == 0
}

// Fields возвращает имена полей с ошибками в алфавитном порядке.
func (f FormErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError описывает ошибки формы по полям.
type ValidationError struct {
	Fields FormErrors
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}
