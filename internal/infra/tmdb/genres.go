package infra_tmdb

import "slices"

var genreIDByName = map[string]int{
	"Action":          28,
	"Adventure":       12,
	"Animation":       16,
	"Comedy":          35,
	"Crime":           80,
	"Documentary":     99,
	"Drama":           18,
	"Family":          10751,
	"Fantasy":         14,
	"History":         36,
	"Horror":          27,
	"Music":           10402,
	"Mystery":         9648,
	"Romance":         10749,
	"Science Fiction": 878,
	"Thriller":        53,
	"War":             10752,
	"Western":         37,
}

var genreNameByID = func() map[int]string {
	m := make(map[int]string, len(genreIDByName))
	for name, id := range genreIDByName {
		m[id] = name
	}
	return m
}()

// genreIDs skips names outside the vocabulary and returns sorted IDs.
func genreIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, n := range names {
		if id, ok := genreIDByName[n]; ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func genreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := genreNameByID[id]; ok {
			names = append(names, n)
		}
	}
	return names
}
