package bpu

// Static is the fallback direction predictor: always predicts not
// taken, per spec.md §4.6: "Static: always (false, none)."
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (s *Static) Predict(pc uint64) bool  { return false }
func (s *Static) Update(pc uint64, taken bool) {}
