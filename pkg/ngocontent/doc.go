// Package ngocontent provides the content layer of the NGO management site:
// categories, testimonials and members, each optionally carrying an image held
// in an object store.
//
// The package keeps a relational record consistent with its externally stored
// image without a shared transaction. Writes stage the blob first and persist
// the record second; deletes remove the record first and the blob second. When
// a later step fails the earlier blob write is compensated with a best-effort
// delete, so the tolerated residue is an orphaned blob, never a record that
// points at a missing one.
//
// Repositories (memory, Postgres, bun/sqlite/mysql) and blob stores (memory,
// filesystem, S3) are provided under subpackages. Listing endpoints page
// through derived projections with ceiling-division page counts.
package ngocontent
