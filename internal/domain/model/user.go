// Пакет model - доменные модели Gamy.
package model

import "time"

// AdminUser - администратор с локальной учётной записью.
// Хранится в таблице admin_users.
type AdminUser struct {
	// ID - идентификатор записи
	ID int64
	// Email - адрес электронной почты (уникален, в нижнем регистре)
	Email string
	// PasswordHash - bcrypt-хэш пароля, никогда не логируется
	PasswordHash string `json:"-"`
	// CreatedAt - время создания записи
	CreatedAt time.Time
}

// EndUser - пользователь, вошедший через Google.
// Хранится в таблице end_users.
type EndUser struct {
	// ID - идентификатор записи
	ID int64
	// ExternalID - Google subject (sub), уникален
	ExternalID string
	// DisplayName - отображаемое имя из профиля Google
	DisplayName string
	// Email - адрес электронной почты из профиля Google
	Email string
	// CreatedAt - время первого входа
	CreatedAt time.Time
}
