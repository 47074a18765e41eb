// Package extract turns submitted files into plain text for analysis.
// Each sub-package handles a set of file extensions; the Registry picks
// the extractor for a file by extension and priority.
package extract
