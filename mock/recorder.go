package mock

import "github.com/fwojciec/llmpatch"

// Compile-time interface verification.
var _ llmpatch.Recorder = (*Recorder)(nil)

// Recorder is a mock implementation of llmpatch.Recorder. When RecordFn is
// nil it collects records into Records.
type Recorder struct {
	RecordFn func(rec llmpatch.AttemptRecord) error
	Records  []llmpatch.AttemptRecord
}

func (r *Recorder) Record(rec llmpatch.AttemptRecord) error {
	if r.RecordFn != nil {
		return r.RecordFn(rec)
	}
	r.Records = append(r.Records, rec)
	return nil
}
