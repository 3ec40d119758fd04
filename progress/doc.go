// Package progress derives the user-facing crawl status of a source from
// three independent, asynchronously arriving signals: the crawl-job row, the
// page rows, and, while an add-page operation is outstanding, the add-page
// job row.
//
// The whole package is one pure function, Derive, applying a priority-ordered
// rule table:
//
//  1. No job row yet: the source is crawling, with the pages already present
//     as the indexed count.
//  2. Job status maps to the UI status (queued, running, indexing, encoding
//     are crawling; failed is error; completed is ready), except an active
//     add-page operation forces crawling.
//  3. The indexed count is the maximum of the job counter and the page-row
//     count, so it never steps backward while the two race.
//  4. The denominator comes from the depth's page cap; dynamic and singular
//     sources use the live page count, frozen at baseline+1 during an
//     add-page operation.
//  5. The encode phase picks its label from the chunk and discovered-link
//     sub-progress pairs.
//
// Missing signals always degrade to a conservative crawling status. The only
// path to an error status is a job that explicitly reports failed; the only
// fatal condition is a failed job with zero pages.
//
// Example:
//
//	snap := progress.Derive(progress.Input{
//		Job:   &progress.CrawlJob{Status: progress.JobEncoding, IndexedCount: 7, EncodingChunksDone: 3, EncodingChunksTotal: 5},
//		Pages: pages,
//		Depth: progress.DepthShallow,
//	})
//	fmt.Println(snap.Status, snap.PagesIndexed, "/", snap.TotalPages, snap.PhaseLabel)
package progress
