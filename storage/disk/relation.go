package disk

import (
	"path/filepath"

	"github.com/HayatoShiba/ppheap/common"
)

// getRelationFilePath returns file path of the table under data directory
// one table is stored in one file and the file has the same name as the table
// - table file: dataDir/tableName
// there is no fork file (fsm, vm) in ppheap. free slots are tracked in the table file itself
func getRelationFilePath(dataDir string, rel common.Relation) string {
	return filepath.Join(dataDir, rel.String())
}
