package converter

import (
	"sort"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/binzume/bf3dconv/mmd"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type VMDToBF3DOption struct {
	// Transform must match the one the hierarchy is encoded with.
	Transform *bf3d.Transform
	// Scale converts MMD units to the hierarchy's units.
	Scale    float32
	Logger   *zap.Logger
	Reporter bf3d.Reporter
}

type vmdToBF3D struct {
	*VMDToBF3DOption
}

func NewVMDToBF3DConverter(options *VMDToBF3DOption) *vmdToBF3D {
	if options == nil {
		options = &VMDToBF3DOption{}
	}
	if options.Transform == nil {
		options.Transform = bf3d.DefaultTransform()
	}
	if options.Scale == 0 {
		options.Scale = 80 * 0.001
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &vmdToBF3D{VMDToBF3DOption: options}
}

type pivotChannel struct {
	pivot int32
	ch    *mmd.BoneChannel
}

// Convert maps bone channels onto the pivots of h by name. Positions are
// offsets from the rest pose in MMD, so the pivot's rest translation is
// added back.
func (c *vmdToBF3D) Convert(anim *mmd.Animation, h *bf3d.Hierarchy) (*bf3d.Animation, error) {
	if h == nil {
		return nil, errors.New("vmd: a hierarchy is required to resolve bone names")
	}
	report := bf3d.Reporter(func(w bf3d.Warning) {
		c.Logger.Warn(w.Message, zap.Stringer("kind", w.Kind), zap.String("subject", w.Subject))
		if c.Reporter != nil {
			c.Reporter(w)
		}
	})

	var channels []pivotChannel
	for name, ch := range anim.GetBoneChannels() {
		idx := h.PivotIndex(name)
		if idx < 0 {
			report.Report(bf3d.WarnUnknownBone, name, "bone not found in hierarchy %q", h.Header.Name)
			continue
		}
		channels = append(channels, pivotChannel{pivot: int32(idx), ch: ch})
	}
	if morphs := anim.GetMorphChannels(); len(morphs) > 0 {
		report.Report(bf3d.WarnUnsupportedChannel, anim.Name, "%d morph channels ignored", len(morphs))
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].pivot < channels[j].pivot })

	a := &bf3d.Animation{
		Header: bf3d.AnimationHeader{
			Name:          anim.Name,
			HierarchyName: h.Header.Name,
			FrameRate:     mmd.FrameRate,
		},
	}
	first, last := int32(-1), int32(-1)
	for _, pc := range channels {
		ch := pc.ch
		rest := c.Transform.Matrix(&h.Pivots[pc.pivot].Matrix)

		translate := false
		rotate := false
		positions := make([][3]float32, len(ch.Frames))
		rotations := make([][4]float32, len(ch.Frames))
		for i := range ch.Frames {
			p := ch.Positions[i]
			if *p != (mmd.Vector3{}) {
				translate = true
			}
			positions[i] = [3]float32{
				rest[12] + p.X*c.Scale,
				rest[13] + p.Y*c.Scale,
				rest[14] - p.Z*c.Scale,
			}
			r := ch.Rotations[i]
			if !r.IsIdentityRotation() {
				rotate = true
			}
			// left-handed to right-handed, w first
			rotations[i] = [4]float32{r.W, -r.X, -r.Y, r.Z}
		}

		if translate {
			for comp := 0; comp < 3; comp++ {
				channel := &bf3d.Channel{Pivot: pc.pivot, Extrapolation: bf3d.ExtrapolationBezier, Type: bf3d.NewChannelType(comp, false)}
				for i, f := range ch.Frames {
					channel.Keys = append(channel.Keys, bf3d.Key{Frame: int32(f), Value: positions[i][comp]})
				}
				a.Channels = append(a.Channels, channel)
			}
		}
		if rotate {
			for comp := 0; comp < 4; comp++ {
				channel := &bf3d.Channel{Pivot: pc.pivot, Extrapolation: bf3d.ExtrapolationBezier, Type: bf3d.NewChannelType(comp, true)}
				for i, f := range ch.Frames {
					channel.Keys = append(channel.Keys, bf3d.Key{Frame: int32(f), Value: rotations[i][comp]})
				}
				a.Channels = append(a.Channels, channel)
			}
		}
		if (translate || rotate) && len(ch.Frames) > 0 {
			if f := int32(ch.Frames[0]); first < 0 || f < first {
				first = f
			}
			if f := int32(ch.Frames[len(ch.Frames)-1]); f > last {
				last = f
			}
		}
	}
	if last >= 0 {
		a.Header.FirstFrame = first
		a.Header.LastFrame = last
		a.Header.NumFrames = last
	}
	c.Logger.Debug("converted vmd motion", zap.String("name", anim.Name), zap.Int("channels", len(a.Channels)))
	return a, nil
}
