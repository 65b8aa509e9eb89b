package listing

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		indices []int
		kept    []string
		removed []string
	}{
		{"example", []string{"a", "b", "c", "d"}, []int{1, 3}, []string{"a", "c"}, []string{"b", "d"}},
		{"nothing marked", []string{"a", "b"}, nil, []string{"a", "b"}, []string{}},
		{"everything marked", []string{"a", "b"}, []int{1, 0}, []string{}, []string{"a", "b"}},
		{"duplicates counted once", []string{"a", "b", "c"}, []int{2, 2}, []string{"a", "b"}, []string{"c"}},
		{"out of range ignored", []string{"a", "b"}, []int{-1, 2, 9}, []string{"a", "b"}, []string{}},
		{"empty", []string{}, []int{0}, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.urls, tt.indices)
			if diff := cmp.Diff(tt.kept, got.Kept); diff != "" {
				t.Errorf("kept (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.removed, got.Removed); diff != "" {
				t.Errorf("removed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPartitionLengthProperty(t *testing.T) {
	urls := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6"}
	for mask := 0; mask < 1<<len(urls); mask++ {
		var indices []int
		for i := range urls {
			if mask&(1<<i) != 0 {
				indices = append(indices, i)
			}
		}
		got := Partition(urls, indices)
		assert.Len(t, got.Kept, len(urls)-len(indices))

		// kept elements stay in their original relative order
		last := -1
		for _, k := range got.Kept {
			pos := -1
			for i, u := range urls {
				if u == k {
					pos = i
				}
			}
			assert.Greater(t, pos, last)
			last = pos
		}
	}
}

func TestRemoveToleratesBlobFailures(t *testing.T) {
	blobs := newFakeBlobs()
	a := blobs.put("car-images/c1/1-a.jpg")
	b := blobs.put("car-images/c1/2-b.jpg")
	c := blobs.put("car-images/c1/3-c.jpg")
	blobs.failDelete["car-images/c1/2-b.jpg"] = true
	foreign := "https://elsewhere.example/x.jpg"

	got := NewReconciler(blobs).Remove(context.Background(), []string{a, b, foreign, c}, []int{0, 1, 2})

	assert.Equal(t, []string{c}, got.Kept)
	assert.Equal(t, []string{a, b, foreign}, got.Removed)
	assert.Equal(t, []string{b, foreign}, got.Orphans)
	assert.Equal(t, []string{"car-images/c1/1-a.jpg"}, blobs.deleted)
}
