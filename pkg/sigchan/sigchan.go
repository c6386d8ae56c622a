package sigchan

// Chan 非阻塞信号 channel：只通知"有事发生"，不携带数据。
// 缓冲满时丢弃信号，消费方总能在下一次 select 中拿到最新状态。
type Chan struct {
	c chan struct{}
}

// New 创建信号 channel，bufferSize 通常为 1
func New(bufferSize int) *Chan {
	return &Chan{
		c: make(chan struct{}, bufferSize),
	}
}

// Emit 发送信号，channel 已满时直接丢弃
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C 返回底层 channel 供 select 使用
func (c *Chan) C() <-chan struct{} {
	return c.c
}
