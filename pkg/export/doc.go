// Package export writes a finished harvest to disk.
//
// The export package handles:
//   - Creating the output directory
//   - Writing each selected artifact atomically (temp file + rename)
//   - Naming artifacts with a generation timestamp or a fixed name
//   - Reporting how many records went into each artifact
//
// Artifacts:
//   - <prefix>-data[-<ts>].json: every record, pretty-printed
//   - <prefix>-links[-<ts>].txt: one video URL per line, same order
//   - <prefix>-data[-<ts>].yaml: every record, optional
//
// An empty record set is not an error. Export writes nothing and returns a
// Summary with Empty set so the caller can tell the user.
//
// Usage:
//
//	exp := export.New(&cfg.Output, log, export.WithRecorder(collector))
//	summary, err := exp.Export(records)
//	if err != nil {
//	    return err
//	}
//	if summary.Empty {
//	    fmt.Println("No videos found")
//	}
package export
