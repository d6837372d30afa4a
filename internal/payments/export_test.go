package payments

var IdempotencyKey = idempotencyKey
