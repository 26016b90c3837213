package dto

type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=100"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=ADMIN EDITOR"`
}

type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN EDITOR"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=100"`
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
	Total int64     `json:"total"`
}
