// Package services holds the client-side controllers of the admin console:
// the session manager, the resource list controller shared by the catalog
// screens, and the analytics series with their dashboard.
//
// Controllers keep their state behind a mutex and are safe to call from
// several goroutines. Requests whose results may arrive out of order are
// tagged with an epoch; a result is applied only if its epoch is still the
// latest one minted.
package services
