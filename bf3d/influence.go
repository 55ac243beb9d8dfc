package bf3d

import "fmt"

// MaxInfluences is the number of bone influences a vertex may carry.
const MaxInfluences = 2

type WarningKind int

const (
	WarnTooManyInfluences WarningKind = iota
	WarnMultipleSkeletons
	WarnMissingSkeleton
	WarnUnsupportedPrimitive
	WarnUnknownBone
	WarnUnsupportedChannel
)

var warningKindNames = [...]string{
	"too-many-influences",
	"multiple-skeletons",
	"missing-skeleton",
	"unsupported-primitive",
	"unknown-bone",
	"unsupported-channel",
}

func (k WarningKind) String() string {
	if k < 0 || int(k) >= len(warningKindNames) {
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
	return warningKindNames[k]
}

// Warning is a non-fatal problem in the input. Export continues after it is
// reported.
type Warning struct {
	Kind    WarningKind
	Subject string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%v: %s: %s", w.Kind, w.Subject, w.Message)
}

// Reporter receives warnings. A nil Reporter discards them.
type Reporter func(Warning)

func (r Reporter) Report(kind WarningKind, subject, format string, args ...interface{}) {
	if r != nil {
		r(Warning{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}
}

type BoneWeight struct {
	Bone   int32
	Weight float32
}

// BuildInfluences turns per-vertex bone weights into influence records.
// Vertices without weights get no record. Vertices with more than
// MaxInfluences weights are reported once each and get no record.
func BuildInfluences(mesh string, weights [][]BoneWeight, report Reporter) []VertexInfluence {
	var infs []VertexInfluence
	for i, ws := range weights {
		switch {
		case len(ws) == 0:
		case len(ws) > MaxInfluences:
			report.Report(WarnTooManyInfluences, mesh, "vertex %d has %d bone influences, max %d supported", i, len(ws), MaxInfluences)
		default:
			inf := VertexInfluence{Bone: ws[0].Bone, Weight: ws[0].Weight}
			if len(ws) == 2 {
				inf.ExtraBone = ws[1].Bone
				inf.ExtraWeight = ws[1].Weight
			}
			infs = append(infs, inf)
		}
	}
	return infs
}
