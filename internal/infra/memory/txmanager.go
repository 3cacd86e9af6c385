package memory

import "context"

// TxManager менеджер транзакций для хранилища в памяти.
// Каждая операция репозитория атомарна сама по себе; атомарность
// последовательности чтение-проверка-запись обеспечивает блокировка по столу.
type TxManager struct{}

// NewTxManager создает менеджер транзакций
func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
