package indexhash

import (
	"sync"

	"coredb/buffer"
	"coredb/storage/page"
	"coredb/storage/rid"

	"github.com/cespare/xxhash/v2"
)

// ExtendibleHashTable is a disk-backed secondary index: a directory page
// of bucket pointers over 2^globalDepth hash prefixes, and bucket pages
// holding the actual (Key, rid.RID) pairs. Growth is local — only the
// bucket that overflows splits, not the whole table — which is the point
// of extendible over static hashing.
type ExtendibleHashTable struct {
	mu sync.RWMutex

	bufferPool      *buffer.BufferPool
	directoryPageID int32
}

// NewExtendibleHashTable bootstraps a table: allocate a directory page,
// allocate one bucket page, and point directory slots 0 and 1 at it with
// global depth 1 and local depth 0 — mirroring the original constructor's
// exact sequence (IncrGlobalDepth once, SetLocalDepth(0/1, 0)) so the two
// slots start as a single unsplit bucket.
func NewExtendibleHashTable(bufferPool *buffer.BufferPool) *ExtendibleHashTable {
	dirPageID, dirFrame := bufferPool.NewPage()
	if dirFrame == nil {
		panic("indexhash: buffer pool exhausted bootstrapping directory page")
	}
	dir := &DirectoryPage{}
	dir.InitDirectory(dirPageID, -1)

	bucketPageID, bucketFrame := bufferPool.NewPage()
	if bucketFrame == nil {
		panic("indexhash: buffer pool exhausted bootstrapping bucket page")
	}

	dir.SetBucketPageID(0, bucketPageID)
	dir.SetBucketPageID(1, bucketPageID)
	dir.IncrGlobalDepth()
	dir.SetLocalDepth(0, 0)
	dir.SetLocalDepth(1, 0)

	dir.Encode(dirFrame)
	(&BucketPage{}).Encode(bucketFrame)

	bufferPool.UnpinPage(dirPageID, true)
	bufferPool.UnpinPage(bucketPageID, true)

	return &ExtendibleHashTable{bufferPool: bufferPool, directoryPageID: dirPageID}
}

// hash downcasts a 64-bit xxhash digest to 32 bits, matching the
// original's downcast of MurmurHash for the same reason: extendible
// hashing only ever masks off the low globalDepth bits, so the high 32
// bits add nothing.
func hash(key Key) uint32 {
	return uint32(xxhash.Sum64(key[:]))
}

func keyToDirectoryIndex(key Key, dir *DirectoryPage) uint32 {
	return hash(key) & dir.GlobalDepthMask()
}

func (ht *ExtendibleHashTable) keyToPageID(key Key, dir *DirectoryPage) int32 {
	return dir.GetBucketPageID(keyToDirectoryIndex(key, dir))
}

// fetchDirectory pins and returns both the raw frame (so callers can
// Encode changes back into it before unpinning) and the decoded struct.
func (ht *ExtendibleHashTable) fetchDirectory() (*page.Page, *DirectoryPage) {
	p := ht.bufferPool.FetchPage(ht.directoryPageID)
	return p, DecodeDirectoryPage(p)
}

func (ht *ExtendibleHashTable) fetchBucket(pageID int32) (*page.Page, *BucketPage) {
	p := ht.bufferPool.FetchPage(pageID)
	return p, DecodeBucketPage(p)
}

// GetValue returns every value stored under key.
func (ht *ExtendibleHashTable) GetValue(key Key) []rid.RID {
	ht.mu.RLock()
	defer ht.mu.RUnlock()

	_, dir := ht.fetchDirectory()
	pageID := ht.keyToPageID(key, dir)
	_, bucket := ht.fetchBucket(pageID)

	var result []rid.RID
	bucket.GetValue(key, &result)

	ht.bufferPool.UnpinPage(ht.directoryPageID, false)
	ht.bufferPool.UnpinPage(pageID, false)
	return result
}

// maxGlobalDepth is log2(DirectoryArraySize): the directory cannot address
// more slots than its fixed-size arrays hold, so local depth can never
// usefully grow past it.
const maxGlobalDepth = 9

// Insert adds (key, value). Returns false if that exact pair already
// exists. A full bucket triggers a split before the pair is retried.
func (ht *ExtendibleHashTable) Insert(key Key, value rid.RID) bool {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.insertLocked(key, value)
}

// insertLocked is Insert's body, factored out so splitInsert can re-drive
// leftover pairs into a fresh split without trying to re-acquire ht.mu.
// Caller holds ht.mu.
func (ht *ExtendibleHashTable) insertLocked(key Key, value rid.RID) bool {
	_, dir := ht.fetchDirectory()
	pageID := ht.keyToPageID(key, dir)
	bucketFrame, bucket := ht.fetchBucket(pageID)

	if bucket.Insert(key, value) {
		bucket.Encode(bucketFrame)
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, true)
		return true
	}

	if bucket.IsFull() {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, false)
		return ht.splitInsert(key, value)
	}

	// Bucket not full, insert failed: the exact pair is already present.
	ht.bufferPool.UnpinPage(ht.directoryPageID, false)
	ht.bufferPool.UnpinPage(pageID, false)
	return false
}

// splitInsert handles the overflow case: allocate a sibling bucket page,
// drain the full bucket's contents plus the new pair, and re-hash every
// one of them across the old and new pages by directory index. A
// redistribution can fail to separate anything — every pair sharing the
// same bit at the new depth routes back to one side, which happens for
// true key collisions (more than BucketArraySize values under one key,
// spec's multimap case) and can happen for ordinary keys too — so pairs
// that don't fit where they're routed are carried forward and re-driven
// through another split instead of being silently dropped.
func (ht *ExtendibleHashTable) splitInsert(key Key, value rid.RID) bool {
	dirFrame, dir := ht.fetchDirectory()
	oldPageID := ht.keyToPageID(key, dir)
	oldFrame, oldBucket := ht.fetchBucket(oldPageID)

	oldBucketIdx := keyToDirectoryIndex(key, dir)
	if oldBucketIdx >= DirectoryArraySize ||
		(dir.GlobalDepth >= maxGlobalDepth && uint32(dir.GetLocalDepth(oldBucketIdx)) >= dir.GlobalDepth) {
		// Directory exhausted: no further split can separate these
		// pairs (e.g. more identical keys than one bucket can hold).
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(oldPageID, false)
		return false
	}

	var localBucketIdx uint32
	if uint32(dir.GetLocalDepth(oldBucketIdx)) < dir.GlobalDepth {
		localBucketIdx = oldBucketIdx & dir.LocalHighBit(oldBucketIdx)
	} else {
		localBucketIdx = oldBucketIdx
	}

	dir.IncrLocalDepth(oldBucketIdx)

	newPageID, newFrame := ht.bufferPool.NewPage()
	if newFrame == nil {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(oldPageID, false)
		return false
	}
	newBucket := &BucketPage{}

	keys, values := oldBucket.EmptyAll()
	keys = append(keys, key)
	values = append(values, value)

	var newBucketIdx uint32
	var newBucketUsed bool
	var leftoverKeys []Key
	var leftoverValues []rid.RID
	for i := range keys {
		bucketIdx := keyToDirectoryIndex(keys[i], dir)
		updatedLocalBucketIdx := bucketIdx & dir.LocalHighBit(bucketIdx)
		if updatedLocalBucketIdx != localBucketIdx {
			newBucketIdx = bucketIdx
			newBucketUsed = true
			dir.SetBucketPageID(bucketIdx, newPageID)
			if !newBucket.Insert(keys[i], values[i]) {
				leftoverKeys = append(leftoverKeys, keys[i])
				leftoverValues = append(leftoverValues, values[i])
			}
		} else if !oldBucket.Insert(keys[i], values[i]) {
			leftoverKeys = append(leftoverKeys, keys[i])
			leftoverValues = append(leftoverValues, values[i])
		}
	}
	if newBucketUsed {
		dir.CheckAndUpdateDirectory(newBucketIdx)
	}

	dir.Encode(dirFrame)
	oldBucket.Encode(oldFrame)
	newBucket.Encode(newFrame)

	ht.bufferPool.UnpinPage(newPageID, true)
	ht.bufferPool.UnpinPage(ht.directoryPageID, true)
	ht.bufferPool.UnpinPage(oldPageID, true)

	ok := true
	for i := range leftoverKeys {
		if !ht.insertLocked(leftoverKeys[i], leftoverValues[i]) {
			ok = false
		}
	}
	return ok
}

// Remove drops (key, value) if present. An emptied bucket triggers a
// merge attempt with its split image.
func (ht *ExtendibleHashTable) Remove(key Key, value rid.RID) bool {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	_, dir := ht.fetchDirectory()
	pageID := ht.keyToPageID(key, dir)
	bucketFrame, bucket := ht.fetchBucket(pageID)

	if !bucket.Remove(key, value) {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, false)
		return false
	}
	bucket.Encode(bucketFrame)

	if bucket.IsEmpty() {
		ht.bufferPool.UnpinPage(ht.directoryPageID, true)
		ht.bufferPool.UnpinPage(pageID, true)
		ht.merge(key)
	} else {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, true)
	}
	return true
}

// merge folds an emptied bucket back into its split image whenever their
// local depths match (and are > 0), then recurses in case the sibling is
// now also empty and can merge again one level up.
func (ht *ExtendibleHashTable) merge(key Key) {
	dirFrame, dir := ht.fetchDirectory()
	bucketIdx := keyToDirectoryIndex(key, dir)
	pageID := ht.keyToPageID(key, dir)
	_, bucket := ht.fetchBucket(pageID)

	if !bucket.IsEmpty() {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, false)
		return
	}

	splitImageIdx := dir.GetSplitImageIndex(bucketIdx)
	splitImagePageID := dir.GetBucketPageID(splitImageIdx)

	if dir.GetLocalDepth(splitImageIdx) != dir.GetLocalDepth(bucketIdx) || dir.GetLocalDepth(bucketIdx) == 0 {
		ht.bufferPool.UnpinPage(ht.directoryPageID, false)
		ht.bufferPool.UnpinPage(pageID, false)
		return
	}

	for i := range dir.BucketPageIDs {
		switch dir.BucketPageIDs[i] {
		case pageID:
			dir.SetBucketPageID(uint32(i), splitImagePageID)
			dir.DecrLocalDepth(uint32(i))
		case splitImagePageID:
			dir.DecrLocalDepth(uint32(i))
		}
	}
	dir.Encode(dirFrame)

	ht.bufferPool.UnpinPage(ht.directoryPageID, true)
	ht.bufferPool.UnpinPage(pageID, true)

	newPageID := ht.keyToPageID(key, dir)
	_, splitImageBucket := ht.fetchBucket(newPageID)
	if splitImageBucket.IsEmpty() {
		ht.bufferPool.UnpinPage(newPageID, false)
		ht.merge(key)
	} else {
		ht.bufferPool.UnpinPage(newPageID, false)
	}
}

// GlobalDepth returns the directory's current global depth.
func (ht *ExtendibleHashTable) GlobalDepth() uint32 {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	_, dir := ht.fetchDirectory()
	ht.bufferPool.UnpinPage(ht.directoryPageID, false)
	return dir.GlobalDepth
}
