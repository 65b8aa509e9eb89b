package listing

import (
	"context"
	"log"
)

// Reconciler removes images from a listing and their blobs from storage.
type Reconciler struct {
	blobs Blobs
}

func NewReconciler(blobs Blobs) *Reconciler {
	return &Reconciler{blobs: blobs}
}

// Removal is the outcome of dropping images from a listing.
type Removal struct {
	Kept    []string
	Removed []string
	// Orphans are removed URLs whose blob could not be deleted.
	Orphans []string
}

// Remove drops the images at the given indices, keeping the rest in order.
// Out-of-range and repeated indices are ignored. Blob deletion is best
// effort: failures are logged and reported as orphans, never returned.
func (r *Reconciler) Remove(ctx context.Context, urls []string, indices []int) Removal {
	res := Partition(urls, indices)
	res.Orphans = r.DeleteBlobs(ctx, res.Removed)
	return res
}

// Partition splits urls into those kept and those marked by indices without
// touching storage.
func Partition(urls []string, indices []int) Removal {
	marked := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(urls) {
			marked[i] = true
		}
	}

	res := Removal{Kept: make([]string, 0, len(urls)-len(marked)), Removed: []string{}, Orphans: []string{}}
	for i, u := range urls {
		if marked[i] {
			res.Removed = append(res.Removed, u)
		} else {
			res.Kept = append(res.Kept, u)
		}
	}
	return res
}

// DeleteBlobs deletes the blob behind each URL and returns the URLs that
// could not be deleted.
func (r *Reconciler) DeleteBlobs(ctx context.Context, urls []string) []string {
	orphans := []string{}
	for _, u := range urls {
		key, err := r.blobs.KeyFromURL(u)
		if err != nil {
			log.Printf("Could not resolve image %s to a storage key: %v", u, err)
			orphans = append(orphans, u)
			continue
		}
		if err := r.blobs.Delete(ctx, key); err != nil {
			log.Printf("Failed to delete image %s: %v", key, err)
			orphans = append(orphans, u)
		}
	}
	return orphans
}
