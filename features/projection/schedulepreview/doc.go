// Package schedulepreview implements the scheduling read model over the
// planning domain's event flow.
//
// It maintains a duration estimate per workout template so that schedulers can
// preview how long a planned workout will take. Archived templates drop out of
// the preview.
package schedulepreview
