// Package schema inspects the target site's field definitions to find fields of a semantic type:
// taxonomy references bound to a vocabulary, comment fields, and metadata fields.
package schema
