package main

import (
	"os"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/binzume/bf3dconv/config"
	"github.com/binzume/bf3dconv/converter"
	"github.com/binzume/bf3dconv/mmd"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

type loader struct {
	cfg       *config.Config
	transform *bf3d.Transform
	log       *zap.Logger
}

func (l *loader) loadGLTF(path string) (*bf3d.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	l.log.Info("loaded", zap.String("path", path),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("animations", len(doc.Animations)))

	conv := converter.NewGLTFToBF3DConverter(&converter.GLTFToBF3DOption{
		Transform:       l.transform,
		FrameRate:       l.cfg.FrameRate,
		AnimationName:   l.cfg.Animation,
		BoundingBoxName: l.cfg.BoundingBox,
		FlipV:           l.cfg.FlipV,
		Logger:          l.log,
	})
	sc, err := conv.Convert(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "convert %s", path)
	}
	return sc, nil
}

// loadVMD retargets a motion onto the hierarchy of the skeleton scene.
func (l *loader) loadVMD(path, skeleton string) (*bf3d.Scene, error) {
	if skeleton == "" {
		return nil, errors.New("--skeleton is required for a .vmd motion")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	anim, err := mmd.NewVMDParser(f).Parse()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	sk, err := l.loadGLTF(skeleton)
	if err != nil {
		return nil, err
	}
	if sk.Hierarchy == nil {
		return nil, errors.Errorf("%s has no hierarchy", skeleton)
	}

	conv := converter.NewVMDToBF3DConverter(&converter.VMDToBF3DOption{
		Transform: l.transform,
		Scale:     l.cfg.VMDScale,
		Logger:    l.log,
	})
	a, err := conv.Convert(anim, sk.Hierarchy)
	if err != nil {
		return nil, errors.Wrapf(err, "convert %s", path)
	}
	return &bf3d.Scene{
		SkeletonName: sk.SkeletonName,
		Hierarchy:    sk.Hierarchy,
		Animation:    a,
	}, nil
}
