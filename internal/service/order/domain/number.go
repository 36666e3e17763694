// internal/service/order/domain/number.go
package domain

import (
	"fmt"
	"time"
)

// 订单号格式：ORD-YYYYMMDD-NNNN，NNNN 是当天已创建订单数 +1，补零到 4 位。
//
// 已知竞态：同一天内两个并发的下单事务可能在彼此提交前数出相同的序号。
// 这里不额外加锁，order_number 的唯一索引是真正的兜底，
// 碰撞会在插入时以唯一约束冲突的形式出现，由调用方重试。

// FormatOrderNumber 生成给定日期、给定序号的订单号。
func FormatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), seq)
}

// DayBounds 返回 now 所在自然日的半开区间 [当日 00:00, 次日 00:00)。
// 日界按本地时区的午夜计算。
func DayBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
