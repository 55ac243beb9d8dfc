package converter

import (
	"math"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

var interpolationNames = map[gltf.Interpolation]string{
	gltf.InterpolationLinear:      "LINEAR",
	gltf.InterpolationStep:        "STEP",
	gltf.InterpolationCubicSpline: "CUBICSPLINE",
}

func (s *gltfScene) selectAnimation() *gltf.Animation {
	if len(s.src.Animations) == 0 {
		return nil
	}
	if s.AnimationName == "" {
		if len(s.src.Animations) > 1 {
			s.Logger.Info("multiple animations, exporting the first",
				zap.Int("count", len(s.src.Animations)),
				zap.String("name", s.src.Animations[0].Name))
		}
		return s.src.Animations[0]
	}
	for _, a := range s.src.Animations {
		if a.Name == s.AnimationName {
			return a
		}
	}
	s.Logger.Warn("animation not found", zap.String("name", s.AnimationName))
	return nil
}

func (s *gltfScene) readAccessor(idx *uint32) (interface{}, error) {
	if idx == nil {
		return nil, errors.New("missing accessor")
	}
	acr, err := s.accessor(*idx)
	if err != nil {
		return nil, err
	}
	return modeler.ReadAccessor(s.src, acr, nil)
}

// componentValues returns the values of one output component per key.
// Cubic spline samplers store in-tangent, value, out-tangent for each key;
// only the value is kept.
func componentValues(out interface{}, interp gltf.Interpolation) ([][]float32, error) {
	var values [][]float32
	switch out := out.(type) {
	case [][3]float32:
		for _, v := range out {
			values = append(values, []float32{v[0], v[1], v[2]})
		}
	case [][4]float32:
		// glTF stores x, y, z, w; channels are w first.
		for _, v := range out {
			values = append(values, []float32{v[3], v[0], v[1], v[2]})
		}
	default:
		return nil, errors.Errorf("unsupported sampler output %T", out)
	}
	if interp == gltf.InterpolationCubicSpline {
		var mid [][]float32
		for i := 1; i < len(values); i += 3 {
			mid = append(mid, values[i])
		}
		values = mid
	}
	return values, nil
}

func (s *gltfScene) frame(t float32) int32 {
	return int32(math.Round(float64(t) * float64(s.FrameRate)))
}

func (s *gltfScene) convertAnimation(a *gltf.Animation) (*bf3d.Animation, error) {
	anim := &bf3d.Animation{
		Header: bf3d.AnimationHeader{
			Name:      a.Name,
			FrameRate: int32(s.FrameRate),
		},
	}
	first, last := int32(math.MaxInt32), int32(math.MinInt32)
	for ci, ch := range a.Channels {
		if ch.Target.Node == nil || ch.Sampler == nil || int(*ch.Sampler) >= len(a.Samplers) {
			continue
		}
		node := *ch.Target.Node
		subject := s.nodeName(int(node))
		var orientation bool
		switch ch.Target.Path {
		case gltf.TRSTranslation:
		case gltf.TRSRotation:
			orientation = true
		default:
			s.report.Report(bf3d.WarnUnsupportedChannel, subject, "channel %d: only translation and rotation are exported", ci)
			continue
		}
		pivot, ok := s.nodePivot[node]
		if !ok {
			s.report.Report(bf3d.WarnUnknownBone, subject, "channel %d targets a node without pivot", ci)
			continue
		}

		sampler := a.Samplers[*ch.Sampler]
		in, err := s.readAccessor(sampler.Input)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %s channel %d input", a.Name, ci)
		}
		times, ok := in.([]float32)
		if !ok {
			return nil, errors.Errorf("animation %s channel %d: unsupported input %T", a.Name, ci, in)
		}
		out, err := s.readAccessor(sampler.Output)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %s channel %d output", a.Name, ci)
		}
		values, err := componentValues(out, sampler.Interpolation)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %s channel %d", a.Name, ci)
		}

		if len(values) == 0 {
			continue
		}
		extrapolation := bf3d.ParseExtrapolation(interpolationNames[sampler.Interpolation])
		for c := range values[0] {
			channel := &bf3d.Channel{
				Pivot:         pivot,
				Extrapolation: extrapolation,
				Type:          bf3d.NewChannelType(c, orientation),
			}
			for k := 0; k < len(times) && k < len(values); k++ {
				f := s.frame(times[k])
				channel.Keys = append(channel.Keys, bf3d.Key{Frame: f, Value: values[k][c]})
				if f < first {
					first = f
				}
				if f > last {
					last = f
				}
			}
			anim.Channels = append(anim.Channels, channel)
		}
	}
	if first <= last {
		anim.Header.FirstFrame = first
		anim.Header.LastFrame = last
		anim.Header.NumFrames = last
	}
	return anim, nil
}
