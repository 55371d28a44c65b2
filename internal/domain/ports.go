package domain

import "context"

// CatalogReader отдаёт согласованный срез товара для оформления заказа.
type CatalogReader interface {
	// Snapshot возвращает срез товара или ErrProductNotFound. Без побочных эффектов.
	Snapshot(ctx context.Context, productID string) (ProductSnapshot, error)
}

// InventoryLedger управляет остатками товаров.
type InventoryLedger interface {
	// Reserve атомарно уменьшает остаток на qty единиц или возвращает
	// InsufficientStockError с актуальным остатком. Конкурентные резервы
	// одного товара сериализуются хранилищем: сумма успешных резервов
	// никогда не превышает остаток.
	Reserve(ctx context.Context, productID string, qty int32) error
}

// CheckoutTx объединяет операции, доступные внутри одной транзакции оформления.
type CheckoutTx interface {
	CatalogReader
	InventoryLedger
	// InsertOrder сохраняет заказ со всеми позициями одной атомарной записью.
	// При коллизии номера возвращает ErrOrderNumberConflict.
	InsertOrder(ctx context.Context, order Order) error
}

// CheckoutStore открывает транзакцию оформления заказа.
// fn исполняется как единая единица работы: ошибка или отмена контекста
// откатывают все резервы и записи, сделанные внутри.
type CheckoutStore interface {
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// ProductRepository — чтение каталога для браузинга.
type ProductRepository interface {
	// GetActive возвращает активный товар или ErrProductNotFound.
	GetActive(ctx context.Context, id string) (Product, error)
	// List возвращает страницу активных товаров и общее число подходящих под фильтр.
	List(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	// Categories возвращает отсортированный список непустых категорий активных товаров.
	Categories(ctx context.Context) ([]string, error)
}

// OrderRepository — чтение заказов и смена статуса.
// Создание заказов идёт только через CheckoutStore.
type OrderRepository interface {
	// GetByID возвращает заказ с позициями или ErrOrderNotFound.
	GetByID(ctx context.Context, id string) (Order, error)
	// GetByNumber возвращает заказ по человекочитаемому номеру. Чистое чтение.
	GetByNumber(ctx context.Context, number string) (Order, error)
	// List возвращает страницу заказов (новые первыми) и общее число подходящих.
	List(ctx context.Context, filter OrderFilter) ([]Order, int, error)
	// UpdateStatus меняет статус заказа. Единственная проверка легальности —
	// принадлежность множеству статусов (ErrStatusUnknown); произвольные
	// переходы, включая обратные, допустимы.
	UpdateStatus(ctx context.Context, number string, status OrderStatus) (Order, error)
}

// NotificationDispatcher принимает запрос на уведомление покупателя о заказе.
// Вызывается строго после коммита; сбой логируется и не влияет на исход оформления.
type NotificationDispatcher interface {
	OrderConfirmation(ctx context.Context, order Order) error
}
