// internal/service/order/domain/state.go
package domain

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending    Status = "PENDING"    // 已创建，等待支付
	StatusPaid       Status = "PAID"       // 已支付
	StatusProcessing Status = "PROCESSING" // 卖家处理中
	StatusShipped    Status = "SHIPPED"    // 已发货
	StatusDelivered  Status = "DELIVERED"  // 已送达（终态）
	StatusCancelled  Status = "CANCELLED"  // 已取消（终态）
	StatusRefunded   Status = "REFUNDED"   // 已退款（终态）
)

// PaymentStatus 定义了订单的支付状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PaymentLogStatus 是支付流水的状态
type PaymentLogStatus string

const (
	PaymentLogPending   PaymentLogStatus = "PENDING"
	PaymentLogCompleted PaymentLogStatus = "COMPLETED"
	PaymentLogFailed    PaymentLogStatus = "FAILED"
	PaymentLogRefunded  PaymentLogStatus = "REFUNDED"
)
