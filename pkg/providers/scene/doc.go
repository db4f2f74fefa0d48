// Package scene maintains an in-memory graph of named actors with
// transforms and free-form properties, exposed over /actors routes.
// It stands in for a host application's live object model so batches
// and editor tooling have real state to drive.
package scene
