package entity

// RegisterRequest запрос на регистрацию
// Password2 должен совпадать с Password, проверяется в сервисе
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name" binding:"required,max=255"`
	Password  string `json:"password" binding:"required,min=6"`
	Password2 string `json:"password2" binding:"required"`
}

// LoginRequest запрос на вход по имени пользователя
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest запрос на изменение собственного профиля
// Пустые поля не изменяются
type UpdateProfileRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Name  string `json:"name" binding:"omitempty,max=255"`
}

// RefreshRequest запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair пара access + refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Время жизни access токена в секундах
}

// AuthResponse ответ на регистрацию и вход
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// ValidateResponse результат проверки токена
type ValidateResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ErrorResponse стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse стандартный ответ об успехе
type SuccessResponse struct {
	Message string `json:"message"`
}
