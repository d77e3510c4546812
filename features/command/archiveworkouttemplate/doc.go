// Package archiveworkouttemplate implements the Archive Workout Template use
// case of the planning domain. Archiving is terminal, the template accepts no
// further transitions while its history stays queryable.
package archiveworkouttemplate
