// Package models defines the persisted schema of the horror catalog and the
// canonical records that flow between normalization and reconciliation.
//
// Table models (db.go) map one-to-one onto the relational store and are used
// by migrations and the store layer. Domain records (models.go) are what the
// normalizer emits and the reconciliation engine consumes.
package models
