package users

// @Controller("users")
type UserController struct{}

// @Get()
func (c *UserController) List() {}
