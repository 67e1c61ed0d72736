package config

// PasswordConfig содержит параметры хэширования паролей.
type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}
