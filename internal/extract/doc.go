// Package extract derives a calendar event from a coaching invitation.
//
// A calendar attachment wins when it decodes and holds a VEVENT. Otherwise the
// date is searched in the subject (the part after "@") or in the subject and
// snippet, against a list of Go time layouts with dateparse as last resort.
package extract
