// Package models defines the records exchanged with the admin backend:
// the user profile and session, catalog resources (categories, products),
// their editable field sets, and analytics series.
package models
