package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"coredb/buffer"
	"coredb/indexhash"
)

type TableOID uint32
type IndexOID uint32

const NullTableOID TableOID = 0
const NullIndexOID IndexOID = 0

// TableInfo is a named table: its schema, its row store and the OID the
// catalog tracks it under, adapted from catalog.TableInfo with the
// teacher's on-disk Heap swapped for the TableHeap interface.
type TableInfo struct {
	Schema *Schema
	Name   string
	Heap   TableHeap
	OID    TableOID
}

// IndexInfo is a single-column secondary index over a table, backed by an
// ExtendibleHashTable in place of the teacher's B-tree — this engine's
// index layer only ever builds the hash table from §4.3.
type IndexInfo struct {
	Index     *indexhash.ExtendibleHashTable
	IndexName string
	TableName string
	ColumnIdx int
	OID       IndexOID
}

// Catalog is the in-memory table/index directory every executor consults
// through ExecutorContext, adapted from catalog.InMemCatalog. There is no
// persistent variant: catalog.persistent_catalog.go's WAL-backed durability
// is out of scope for this engine.
type Catalog struct {
	mu sync.Mutex

	tables     map[TableOID]*TableInfo
	tableNames map[string]TableOID

	indexes    map[IndexOID]*IndexInfo
	indexNames map[string]map[string]IndexOID

	nextTableOID int64
	nextIndexOID int64

	bufferPool *buffer.BufferPool
}

func NewCatalog(bufferPool *buffer.BufferPool) *Catalog {
	return &Catalog{
		tables:     make(map[TableOID]*TableInfo),
		tableNames: make(map[string]TableOID),
		indexes:    make(map[IndexOID]*IndexInfo),
		indexNames: make(map[string]map[string]IndexOID),
		bufferPool: bufferPool,
	}
}

// CreateTable registers a table over an already-constructed heap (the
// caller picks the TableHeap implementation — normally
// execution.NewMemHeap in tests and the demo). Returns nil if the name is
// already taken.
func (c *Catalog) CreateTable(name string, schema *Schema, heap TableHeap) *TableInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tableNames[name]; exists {
		return nil
	}

	oid := TableOID(atomic.AddInt64(&c.nextTableOID, 1))
	info := &TableInfo{Schema: schema, Name: name, Heap: heap, OID: oid}
	c.tables[oid] = info
	c.tableNames[name] = oid
	c.indexNames[name] = map[string]IndexOID{}
	return info
}

func (c *Catalog) GetTable(name string) *TableInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	oid, ok := c.tableNames[name]
	if !ok {
		return nil
	}
	return c.tables[oid]
}

func (c *Catalog) GetTableByOID(oid TableOID) *TableInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tables[oid]
}

// CreateIndex builds an ExtendibleHashTable over columnIdx and backfills it
// from every tuple currently in the table's heap, matching the teacher's
// CreateBtreeIndex backfill loop with a hash table in place of the btree.
func (c *Catalog) CreateIndex(indexName, tableName string, columnIdx int) (*IndexInfo, error) {
	c.mu.Lock()
	tableOID, ok := c.tableNames[tableName]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("catalog: cannot index nonexistent table %q", tableName)
	}
	if _, exists := c.indexNames[tableName][indexName]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("catalog: index %q already defined on table %q", indexName, tableName)
	}
	table := c.tables[tableOID]
	c.mu.Unlock()

	index := indexhash.NewExtendibleHashTable(c.bufferPool)

	it := table.Heap.Iterator()
	for {
		id, data, ok := it.Next()
		if !ok {
			break
		}
		tuple := &Tuple{Data: data, RID: id}
		val := tuple.GetValue(table.Schema, columnIdx)
		index.Insert(ValueToIndexKey(val), id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	oid := IndexOID(atomic.AddInt64(&c.nextIndexOID, 1))
	info := &IndexInfo{
		Index:     index,
		IndexName: indexName,
		TableName: tableName,
		ColumnIdx: columnIdx,
		OID:       oid,
	}
	c.indexes[oid] = info
	c.indexNames[tableName][indexName] = oid
	return info, nil
}

func (c *Catalog) GetIndex(indexName, tableName string) *IndexInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	oid, ok := c.indexNames[tableName][indexName]
	if !ok {
		return nil
	}
	return c.indexes[oid]
}

// GetTableIndexes returns every index defined on tableName, in no
// particular order.
func (c *Catalog) GetTableIndexes(tableName string) []*IndexInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]*IndexInfo, 0, len(c.indexNames[tableName]))
	for _, oid := range c.indexNames[tableName] {
		result = append(result, c.indexes[oid])
	}
	return result
}
