package api

import "github.com/rise-and-shine/order-inventory-platform/models"

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72" mask:"true"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required" mask:"true"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

type orderLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity"   validate:"required,gt=0"`
}

type placeOrderRequest struct {
	Items []orderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type pageQuery struct {
	PageNumber int `query:"page_number"`
	PageSize   int `query:"page_size"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
