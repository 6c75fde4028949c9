package unpack

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ralt/xpkg/internal/models"
)

func manifest(files, confs, links []string) *models.FileManifest {
	m := &models.FileManifest{}
	for _, p := range files {
		m.Files = append(m.Files, models.ManifestEntry{Path: p})
	}
	for _, p := range confs {
		m.ConfFiles = append(m.ConfFiles, models.ManifestEntry{Path: p})
	}
	for _, p := range links {
		m.Links = append(m.Links, models.ManifestEntry{Path: p})
	}
	return m
}

func TestObsoletePaths(t *testing.T) {
	tests := []struct {
		name string
		prev *models.FileManifest
		cur  *models.FileManifest
		want []string
	}{
		{
			name: "no previous manifest",
			prev: nil,
			cur:  manifest([]string{"usr/bin/tool"}, nil, nil),
			want: nil,
		},
		{
			name: "identical manifests",
			prev: manifest([]string{"usr/bin/tool"}, []string{"etc/tool.conf"}, nil),
			cur:  manifest([]string{"usr/bin/tool"}, []string{"etc/tool.conf"}, nil),
			want: nil,
		},
		{
			name: "dropped file conf and link",
			prev: manifest([]string{"usr/bin/tool", "usr/bin/old"}, []string{"etc/old.conf"}, []string{"usr/bin/alias"}),
			cur:  manifest([]string{"usr/bin/tool"}, nil, nil),
			want: []string{"etc/old.conf", "usr/bin/alias", "usr/bin/old"},
		},
		{
			name: "path moved between collections survives",
			prev: manifest([]string{"etc/app.conf"}, nil, nil),
			cur:  manifest(nil, []string{"etc/app.conf"}, nil),
			want: nil,
		},
	}

	for _, tt := range tests {
		got := obsoletePaths(tt.prev, tt.cur)
		sort.Strings(got)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: obsoletePaths = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestObsoletePathsDeepestFirst(t *testing.T) {
	prev := manifest([]string{"usr/share/app/data/file", "usr/share/app/other"}, nil, nil)
	cur := manifest(nil, nil, nil)

	got := obsoletePaths(prev, cur)
	if len(got) != 2 || got[0] != "usr/share/app/data/file" {
		t.Errorf("obsoletePaths order = %v, want deepest path first", got)
	}
}
