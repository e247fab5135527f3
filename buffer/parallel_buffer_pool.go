package buffer

import (
	"sync/atomic"

	"coredb/storage/disk"
	"coredb/storage/page"
)

// ParallelBufferPool shards pages across numInstances independent
// BufferPool instances by page id, so that callers touching different
// pages don't contend on the same mutex. A page's shard is fixed for its
// entire lifetime: each instance allocates ids on an
// instance_index + k*num_instances stride, so pageID mod numInstances
// always lands back on the instance that created it.
type ParallelBufferPool struct {
	instances []*BufferPool
	diskMgr   disk.DiskManager
	next      int // round-robin start point for NewPage
}

// NewParallelBufferPool builds numInstances shards of poolSize frames
// each, all drawing from the same disk manager.
func NewParallelBufferPool(numInstances, poolSize int, diskManager disk.DiskManager) *ParallelBufferPool {
	instances := make([]*BufferPool, numInstances)
	for i := range instances {
		instanceIndex := int32(i)
		stride := int32(numInstances)
		var counter int32 = -1 // pre-increment below starts at 0
		allocate := func() int32 {
			k := atomic.AddInt32(&counter, 1)
			return instanceIndex + stride*k
		}
		instances[i] = newBufferPool(poolSize, diskManager, allocate)
	}
	return &ParallelBufferPool{instances: instances, diskMgr: diskManager}
}

func (p *ParallelBufferPool) instanceFor(pageID int32) *BufferPool {
	idx := int(pageID) % len(p.instances)
	if idx < 0 {
		idx += len(p.instances)
	}
	return p.instances[idx]
}

func (p *ParallelBufferPool) FetchPage(pageID int32) *page.Page {
	return p.instanceFor(pageID).FetchPage(pageID)
}

func (p *ParallelBufferPool) UnpinPage(pageID int32, isDirty bool) bool {
	return p.instanceFor(pageID).UnpinPage(pageID, isDirty)
}

func (p *ParallelBufferPool) FlushPage(pageID int32) bool {
	return p.instanceFor(pageID).FlushPage(pageID)
}

func (p *ParallelBufferPool) DeletePage(pageID int32) bool {
	return p.instanceFor(pageID).DeletePage(pageID)
}

func (p *ParallelBufferPool) FlushAllPages() {
	for _, inst := range p.instances {
		inst.FlushAllPages()
	}
}

// NewPage allocates a new page, round-robining across instances so ids
// spread evenly regardless of the allocator's own numbering. Every
// instance is tried once; if all are fully pinned, allocation fails.
func (p *ParallelBufferPool) NewPage() (int32, *page.Page) {
	n := len(p.instances)
	start := p.next
	p.next = (p.next + 1) % n

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if id, pg := p.instances[idx].NewPage(); pg != nil {
			return id, pg
		}
	}
	return page.InvalidPageID, nil
}

// NumInstances reports the shard count.
func (p *ParallelBufferPool) NumInstances() int {
	return len(p.instances)
}
