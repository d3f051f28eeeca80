package dataset

import (
	"math/rand"
)

// Split partitions the dataset into train and test sets.
// ratio is the held-out fraction in [0, 1). The shuffle is seeded, so the
// same seed over the same dataset reproduces identical partitions. With
// stratify enabled each label is split proportionally, keeping the class
// balance of the full dataset in both partitions.
func (d Dataset) Split(ratio float64, seed int64, stratify bool) (train, test Dataset) {
	if ratio <= 0 || len(d) == 0 {
		train = append(train, d...)
		return train, nil
	}

	rng := rand.New(rand.NewSource(seed))

	if !stratify {
		return splitShuffled(d, ratio, rng)
	}

	// Group record indices by label, in first-seen order so the
	// walk order is deterministic.
	var order []string
	groups := make(map[string][]Record)
	for _, r := range d {
		if _, seen := groups[r.Label]; !seen {
			order = append(order, r.Label)
		}
		groups[r.Label] = append(groups[r.Label], r)
	}

	for _, label := range order {
		groupTrain, groupTest := splitShuffled(groups[label], ratio, rng)
		train = append(train, groupTrain...)
		test = append(test, groupTest...)
	}

	// Interleave classes so neither partition is label-ordered
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return train, test
}

// splitShuffled shuffles a copy of the records and cuts off the test tail
func splitShuffled(records Dataset, ratio float64, rng *rand.Rand) (train, test Dataset) {
	shuffled := make(Dataset, len(records))
	copy(shuffled, records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	testSize := int(float64(len(shuffled)) * ratio)
	if testSize >= len(shuffled) {
		testSize = len(shuffled) - 1
	}

	cut := len(shuffled) - testSize
	return shuffled[:cut], shuffled[cut:]
}
