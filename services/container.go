package services

// Container groups the engine's service surface for the API layer.
type Container struct {
	Orders   IOrderService
	Auth     IAuthService
	Products IProductService
}
