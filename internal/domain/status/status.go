// Пакет status - правило переходов статуса отчёта об остановке.
//
// Жизненный цикл строго линейный:
//   - Enviado → Pendiente → Resuelto
//   - Resuelto - конечный статус, переходы запрещены
//
// Повторная установка текущего статуса считается недопустимым переходом.
// Статус отчёта об автобусе этим правилам не подчиняется.
package status

import "fmt"

// StopStatus - статус отчёта об остановке.
type StopStatus string

const (
	// Enviado - отчёт отправлен пользователем (начальный статус)
	Enviado StopStatus = "Enviado"
	// Pendiente - отчёт принят администратором в работу
	Pendiente StopStatus = "Pendiente"
	// Resuelto - проблема решена (конечный статус)
	Resuelto StopStatus = "Resuelto"
)

// Initial - статус нового отчёта.
const Initial = Enviado

// CodeInvalidTransition - машиночитаемый код недопустимого перехода.
const CodeInvalidTransition = "INVALID_TRANSITION"

// validTransitions - единственный допустимый следующий статус для каждого статуса.
var validTransitions = map[StopStatus]StopStatus{
	Enviado:   Pendiente,
	Pendiente: Resuelto,
}

// predecessors - обратная таблица validTransitions.
var predecessors = map[StopStatus]StopStatus{
	Pendiente: Enviado,
	Resuelto:  Pendiente,
}

// All возвращает все статусы в порядке жизненного цикла.
func All() []StopStatus {
	return []StopStatus{Enviado, Pendiente, Resuelto}
}

// IsValid проверяет, является ли значение известным статусом.
func (s StopStatus) IsValid() bool {
	switch s {
	case Enviado, Pendiente, Resuelto:
		return true
	default:
		return false
	}
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s StopStatus) IsTerminal() bool {
	_, ok := validTransitions[s]
	return s.IsValid() && !ok
}

func (s StopStatus) String() string {
	return string(s)
}

// Parse преобразует строку в StopStatus.
// Сравнение точное: "enviado" не является допустимым статусом.
func Parse(s string) (StopStatus, error) {
	st := StopStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("недопустимый статус: %q, допустимые: Enviado, Pendiente, Resuelto", s)
	}
	return st, nil
}

// Next возвращает единственный допустимый следующий статус.
// false - для конечного или неизвестного статуса.
func Next(current StopStatus) (StopStatus, bool) {
	next, ok := validTransitions[current]
	return next, ok
}

// Predecessor возвращает статус, из которого допустим переход в requested.
// Используется для атомарного условного UPDATE.
func Predecessor(requested StopStatus) (StopStatus, bool) {
	prev, ok := predecessors[requested]
	return prev, ok
}

// CanTransition проверяет допустимость перехода current → requested.
func CanTransition(current, requested StopStatus) bool {
	next, ok := Next(current)
	return ok && next == requested
}

// Validate возвращает *TransitionError, если переход недопустим.
func Validate(current, requested StopStatus) error {
	if !requested.IsValid() {
		return &TransitionError{
			Code:    CodeInvalidTransition,
			Current: current,
			Message: fmt.Sprintf("недопустимый целевой статус: %q", requested),
		}
	}
	if !current.IsValid() {
		return &TransitionError{
			Code:    CodeInvalidTransition,
			Current: current,
			Message: fmt.Sprintf("неизвестный текущий статус: %q", current),
		}
	}
	if !CanTransition(current, requested) {
		return &TransitionError{
			Code:    CodeInvalidTransition,
			Current: current,
			Message: fmt.Sprintf("переход %s → %s недопустим", current, requested),
		}
	}
	return nil
}

// TransitionError - ошибка перехода между статусами.
type TransitionError struct {
	Code    string     // Машиночитаемый код (INVALID_TRANSITION)
	Current StopStatus // Статус, сохранённый на момент отказа
	Message string     // Человекочитаемое описание
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
