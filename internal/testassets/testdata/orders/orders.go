package orders

// OrderController serves orders.
//
// @Controller("orders")
type OrderController struct{}

// Get returns one order.
//
// @Get(":orderId")
// @Param(id)
func (c *OrderController) Get(id OrderID) (*Order, error) { return nil, nil }

// Search lists orders.
//
// @Get()
// @Query(q)
// @summary Search orders
func (c *OrderController) Search(q OrderQuery) (*OrderList, error) { return nil, nil }

// Cancel cancels an order.
//
// @Post(":orderId/cancel")
// @Param(id)
// @Body(in)
func (c *OrderController) Cancel(id OrderID, in CancelDto) error { return nil }
