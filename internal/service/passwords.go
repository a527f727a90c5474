package service

import "golang.org/x/crypto/bcrypt"

// hashPassword возвращает bcrypt-хэш пароля.
func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// checkPassword сравнивает пароль с bcrypt-хэшем.
func checkPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
