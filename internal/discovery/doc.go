// Package discovery finds apps on disk and loads their descriptors.
//
// Each app type root holds one directory per app. An app directory is
// recognised when it contains a descriptor (app.cue) declaring an entry
// point and the hosts it works with:
//
//	// Purpose: summarise open workbooks
//	// Author: Jane Doe
//	// Version: 1.0
//	entry:   "SummaryApp"
//	com_app: ["excel"]
//
// The leading comment block is the app's description. Author and version
// are read from it by ParseInfo.
//
// A directory that fails to load is reported as a *model.ImportError on its
// catalog entry. Scanning never stops at a bad app.
package discovery
