// Package core provides the job posting operations behind the HTTP API and
// the CLI, independent of either transport.
//
// # Uploads
//
// [Service.UploadJobs] takes the raw bytes of an .xlsx workbook and:
//
//  1. Waits for a slot from the [UploadLimiter]
//  2. Parses the "Main" sheet with [ingest.Parse], collecting per-row errors
//  3. Opens one transaction, takes an advisory lock, and inserts every
//     record whose dedupe hash is neither stored nor repeated in the batch
//  4. Commits once, so an upload is stored completely or not at all
//
// # Queries
//
// [Service.ListJobs], [Service.GetJob] and [Service.Stats] read active
// postings through the store package.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with codes by
// [MapError]. See error_messages.go for the code table.
package core
