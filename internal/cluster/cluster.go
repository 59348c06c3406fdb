// Package cluster groups memories into map markers.
//
// The grouping is greedy seed clustering: memories are scanned in input order,
// the first memory not yet assigned seeds a new cluster and every later
// unassigned memory closer than the threshold to that seed joins it. Distance
// is only ever measured against the seed, so two members of one cluster may be
// farther apart than the threshold. Memories sharing a group tag are merged
// first, regardless of distance, and never take part in proximity grouping.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"memory-map-backend/internal/geo"
	"memory-map-backend/internal/models"
)

// DefaultThresholdMeters is the proximity threshold used when none is configured
const DefaultThresholdMeters = 30.0

// ErrInvalidInput is returned when the options cannot produce a clustering
var ErrInvalidInput = errors.New("invalid clustering input")

// Options configures a clustering pass
type Options struct {
	ThresholdMeters float64
}

// DefaultOptions returns options with the default threshold
func DefaultOptions() Options {
	return Options{ThresholdMeters: DefaultThresholdMeters}
}

// Validate checks the threshold is a positive finite number
func (o Options) Validate() error {
	t := o.ThresholdMeters
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return fmt.Errorf("%w: threshold must be a positive finite number of meters, got %v", ErrInvalidInput, t)
	}
	return nil
}

// Build partitions memories into clusters. Every memory lands in exactly one
// cluster; an empty input yields an empty result. The input slice is not modified.
func Build(memories []models.Memory, opts Options) ([]models.Cluster, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	clusters := make([]models.Cluster, 0, len(memories))
	assigned := make([]bool, len(memories))

	// tagged groups, in first-occurrence order
	tagOrder := []string{}
	tagged := map[string][]int{}
	for i := range memories {
		tag := memories[i].GroupTag
		if tag == "" {
			continue
		}
		if _, seen := tagged[tag]; !seen {
			tagOrder = append(tagOrder, tag)
		}
		tagged[tag] = append(tagged[tag], i)
		assigned[i] = true
	}
	for _, tag := range tagOrder {
		clusters = append(clusters, newCluster(memories, tagged[tag]))
	}

	for i := range memories {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		seed := &memories[i]
		members := []int{i}

		for j := i + 1; j < len(memories); j++ {
			if assigned[j] {
				continue
			}
			other := &memories[j]
			if geo.Distance(seed.Latitude, seed.Longitude, other.Latitude, other.Longitude) < opts.ThresholdMeters {
				assigned[j] = true
				members = append(members, j)
			}
		}

		clusters = append(clusters, newCluster(memories, members))
	}

	return clusters, nil
}

// newCluster copies the indexed memories, sorts them by date and computes the centroid
func newCluster(memories []models.Memory, idx []int) models.Cluster {
	members := make([]models.Memory, len(idx))
	var sumLat, sumLng float64
	for k, i := range idx {
		members[k] = memories[i]
		sumLat += memories[i].Latitude
		sumLng += memories[i].Longitude
	}
	sort.SliceStable(members, func(a, b int) bool {
		return members[a].Before(&members[b])
	})

	n := float64(len(members))
	c := models.Cluster{
		Members: members,
		Size:    len(members),
	}
	if len(members) == 1 {
		c.CentroidLatitude = members[0].Latitude
		c.CentroidLongitude = members[0].Longitude
	} else {
		c.CentroidLatitude = sumLat / n
		c.CentroidLongitude = sumLng / n
	}
	return c
}
