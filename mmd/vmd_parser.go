package mmd

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	vmdSignatureV1 = "Vocaloid Motion Data file"
	vmdSignatureV2 = "Vocaloid Motion Data 0002"
)

// FrameRate is the native key rate of .vmd motions.
const FrameRate = 30

// VMDParser is parser for .vmd animation.
type VMDParser struct {
	baseParser
}

type Animation struct {
	Name  string
	Bone  []*AnimationBoneSample
	Morph []*AnimationMorphSample
}

type AnimationBoneSample struct {
	Target   string
	Frame    int
	Position Vector3
	Rotation Vector4
	Params   [64]byte
}

type AnimationMorphSample struct {
	Target string
	Frame  int
	Value  float32
}

type BoneChannel struct {
	Target    string
	Frames    []uint32
	Positions []*Vector3
	Rotations []*Vector4
}

type MorphChannel struct {
	Target  string
	Frames  []uint32
	Weights []float32
}

// GetBoneChannels groups bone samples by target, ordered by frame.
func (a *Animation) GetBoneChannels() map[string]*BoneChannel {
	sort.SliceStable(a.Bone, func(i, j int) bool { return a.Bone[i].Frame < a.Bone[j].Frame })

	r := map[string]*BoneChannel{}
	for _, s := range a.Bone {
		ch, ok := r[s.Target]
		if !ok {
			ch = &BoneChannel{Target: s.Target}
			r[s.Target] = ch
		}
		ch.Frames = append(ch.Frames, uint32(s.Frame))
		ch.Positions = append(ch.Positions, &s.Position)
		ch.Rotations = append(ch.Rotations, &s.Rotation)
	}
	return r
}

func (a *Animation) GetMorphChannels() map[string]*MorphChannel {
	sort.SliceStable(a.Morph, func(i, j int) bool { return a.Morph[i].Frame < a.Morph[j].Frame })

	r := map[string]*MorphChannel{}
	for _, s := range a.Morph {
		ch, ok := r[s.Target]
		if !ok {
			ch = &MorphChannel{Target: s.Target}
			r[s.Target] = ch
		}
		ch.Frames = append(ch.Frames, uint32(s.Frame))
		ch.Weights = append(ch.Weights, s.Value)
	}
	return r
}

// NewVMDParser returns new parser.
func NewVMDParser(r io.Reader) *VMDParser {
	return &VMDParser{baseParser: baseParser{r: r}}
}

// Parse animation data. Camera, light and later sections are not read.
func (p *VMDParser) Parse() (*Animation, error) {
	var anim Animation

	nameLen := 20
	switch signature := p.readString(30); {
	case p.err != nil:
		return nil, errors.Wrap(p.err, "vmd header")
	case strings.HasPrefix(signature, vmdSignatureV2):
	case strings.HasPrefix(signature, vmdSignatureV1):
		nameLen = 10
	default:
		return nil, errors.Errorf("unsupported vmd signature %q", signature)
	}
	anim.Name = p.readString(nameLen)

	frames := p.readInt()
	for i := 0; i < frames && p.err == nil; i++ {
		sample := &AnimationBoneSample{}
		sample.Target = p.readString(15)
		sample.Frame = p.readInt()
		p.read(&sample.Position)
		p.read(&sample.Rotation)
		p.read(&sample.Params)
		anim.Bone = append(anim.Bone, sample)
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "vmd bone frame %d of %d", len(anim.Bone), frames)
	}

	frames = p.readInt()
	if p.err == io.EOF {
		// motions without a morph section end here
		return &anim, nil
	}
	for i := 0; i < frames && p.err == nil; i++ {
		sample := &AnimationMorphSample{}
		sample.Target = p.readString(15)
		sample.Frame = p.readInt()
		sample.Value = p.readFloat()
		anim.Morph = append(anim.Morph, sample)
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "vmd morph frame %d of %d", len(anim.Morph), frames)
	}
	return &anim, nil
}
