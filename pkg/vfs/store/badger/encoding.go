package badger

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the record
// collections into logical namespaces. Prefix scans give us the two listing
// shapes the engine needs: immediate child folders of a parent, and files
// under a folder.
//
// Data Type      Prefix  Key Format                                Value
// =========================================================================
// Folder Data    "fo:"   fo:<owner>:<folderPath>                   FolderRecord (JSON)
// File Data      "fi:"   fi:<owner>:<fileID>                       FileRecord (JSON)
// File Name Idx  "fk:"   fk:<owner>:<folderPath>\x00<name>         fileID (string)
//
// Folder records are keyed by their own normalized path, so sibling
// uniqueness is a single-key existence check and listing children of a
// parent is a prefix scan over "fo:<owner>:<parent>/" filtered to names
// without a further "/". The file name index enforces the
// (owner, folder_path, name) key and doubles as the per-folder listing
// index; "\x00" separates the folder path from the name because it can
// appear in neither.

const (
	prefixFolder  = "fo:"
	prefixFile    = "fi:"
	prefixFileKey = "fk:"
)

// keyFolder generates a key for folder data: "fo:<owner>:<path>"
func keyFolder(owner vfs.OwnerID, path string) []byte {
	return []byte(prefixFolder + strconv.FormatInt(int64(owner), 10) + ":" + path)
}

// keyFolderChildPrefix generates a prefix for scanning the immediate and
// nested folders under parent: "fo:<owner>:<parent>/"
func keyFolderChildPrefix(owner vfs.OwnerID, parent string) []byte {
	base := prefixFolder + strconv.FormatInt(int64(owner), 10) + ":"
	if vfs.IsRoot(parent) {
		return []byte(base + "/")
	}
	return []byte(base + parent + "/")
}

// keyFile generates a key for file data: "fi:<owner>:<id>"
func keyFile(owner vfs.OwnerID, id string) []byte {
	return []byte(prefixFile + strconv.FormatInt(int64(owner), 10) + ":" + id)
}

// keyFilePrefix generates a prefix for scanning all files of an owner.
func keyFilePrefix(owner vfs.OwnerID) []byte {
	return []byte(prefixFile + strconv.FormatInt(int64(owner), 10) + ":")
}

// keyFileName generates a file name index key:
// "fk:<owner>:<folderPath>\x00<name>"
func keyFileName(owner vfs.OwnerID, folderPath, name string) []byte {
	return []byte(prefixFileKey + strconv.FormatInt(int64(owner), 10) + ":" + folderPath + "\x00" + name)
}

// keyFileNamePrefix generates a prefix for scanning the file name index of
// one folder: "fk:<owner>:<folderPath>\x00"
func keyFileNamePrefix(owner vfs.OwnerID, folderPath string) []byte {
	return []byte(prefixFileKey + strconv.FormatInt(int64(owner), 10) + ":" + folderPath + "\x00")
}

// ============================================================================
// JSON Encoding/Decoding
// ============================================================================

func encodeFolder(record *vfs.FolderRecord) ([]byte, error) {
	bytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode folder record: %w", err)
	}
	return bytes, nil
}

func decodeFolder(bytes []byte) (*vfs.FolderRecord, error) {
	var record vfs.FolderRecord
	if err := json.Unmarshal(bytes, &record); err != nil {
		return nil, fmt.Errorf("failed to decode folder record: %w", err)
	}
	return &record, nil
}

func encodeFile(record *vfs.FileRecord) ([]byte, error) {
	bytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file record: %w", err)
	}
	return bytes, nil
}

func decodeFile(bytes []byte) (*vfs.FileRecord, error) {
	var record vfs.FileRecord
	if err := json.Unmarshal(bytes, &record); err != nil {
		return nil, fmt.Errorf("failed to decode file record: %w", err)
	}
	return &record, nil
}

// immediateChildName extracts the child name from a folder key scanned with
// keyFolderChildPrefix, or "" when the key belongs to a deeper descendant.
func immediateChildName(key, prefix []byte) string {
	rest := string(key[len(prefix):])
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return ""
		}
	}
	return rest
}
