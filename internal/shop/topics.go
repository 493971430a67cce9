package shop

import "strconv"

const TopicOrders = "shop.orders"

// Partition key = order_id, supaya event untuk 1 order maintain urutan.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
