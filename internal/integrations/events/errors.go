package events

import "errors"

// ErrDelivery возвращается при ошибке доставки события или уведомления
var ErrDelivery = errors.New("events: delivery failed")
