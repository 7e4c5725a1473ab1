// Package normalize converts raw source batches into canonical records.
//
// A Batch is one of APIBatch, TitleBatch or ExpiringBatch. The variant is
// resolved once here and nothing downstream sees raw shapes.
package normalize
