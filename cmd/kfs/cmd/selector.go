package cmd

import (
	"strconv"

	"github.com/pgerbes1/kfs/pkg/keyalgo"
	"github.com/pgerbes1/kfs/pkg/kfs"
)

// parseSelector accepts either a raw shard index or a hex file key,
// matching the "bucket-index|K" argument shape used by list and stat.
func parseSelector(arg string) (kfs.KeyOrIndex, error) {
	if idx, err := strconv.Atoi(arg); err == nil {
		return kfs.ByIndex(idx), nil
	}
	k, err := keyalgo.ParseKey(arg)
	if err != nil {
		return kfs.KeyOrIndex{}, err
	}
	return kfs.ByKey(k), nil
}
