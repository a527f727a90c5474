// Пакет access - решение о доступе к маршруту по роли сессии.
// Роли не образуют иерархию: администратор не получает доступ
// к маршрутам пользователя и наоборот.
package access

// Role - роль аутентифицированной сессии.
type Role string

const (
	// RoleAnonymous - сессии нет
	RoleAnonymous Role = ""
	// RoleAdmin - администратор (локальный вход или Google)
	RoleAdmin Role = "admin"
	// RoleUser - пользователь (Google OAuth)
	RoleUser Role = "user"
)

// Requirement - требование маршрута к роли.
type Requirement int

const (
	// Public - маршрут доступен всем
	Public Requirement = iota
	// UserOnly - только пользователь
	UserOnly
	// AdminOnly - только администратор
	AdminOnly
)

// Decision - результат проверки доступа.
type Decision int

const (
	// Allow - запрос пропускается к обработчику
	Allow Decision = iota
	// Redirect - перенаправление на страницу входа
	Redirect
)

// requiredRole - роль, которой удовлетворяет каждое требование.
var requiredRole = map[Requirement]Role{
	UserOnly:  RoleUser,
	AdminOnly: RoleAdmin,
}

// Authorize решает, пропустить ли запрос с ролью role
// к маршруту с требованием required.
func Authorize(role Role, required Requirement) Decision {
	if required == Public {
		return Allow
	}
	want, ok := requiredRole[required]
	if !ok || role != want {
		return Redirect
	}
	return Allow
}

// IsValidRole проверяет, является ли строка ролью аутентифицированной сессии.
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}
