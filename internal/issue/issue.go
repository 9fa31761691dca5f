// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	SourceNotFoundId
	IndexDownloadFailedId
	IndexCorruptId
	PackageNotAvailableId
	ModuleNotInstalledId
	SwordDirNotFoundId
	DownloadFailedId
	VerifyFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the swordctl configuration file.

## Configuration file locations:
- Linux: ~/.config/swordctl/config.cue
- macOS: ~/Library/Application Support/swordctl/config.cue
- Windows: %APPDATA%\swordctl\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ swordctl config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/swordctl/config.cue
~~~

## Example configuration:
~~~cue
sword_dir: "/home/user/.sword"

download: {
  timeout_seconds: 60
  max_retries: 3
}

install: {
  workers: 4
}
~~~`,
	}

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# Source not found!

The repository source you named is not in the built-in catalog or your
saved source list.

## Things you can try:
- List the known sources:
~~~
$ swordctl sources
~~~

- Check for typos in the source name (names are case-sensitive, e.g. "CrossWire")
- Add a custom source to mods.d/install.conf:
~~~
[MyMirror]
HTTPSSource=mirror.example.com|/sword|MyMirror
~~~`,
	}

	indexDownloadFailedIssue = &Issue{
		id: IndexDownloadFailedId,
		mdMsg: `
# Could not download the module index!

Fetching mods.d.tar.gz from the source failed.

## Common causes:
- The mirror is down or unreachable
- A firewall is blocking FTP (port 21) or HTTP traffic
- The source's directory path is wrong

## Things you can try:
- Retry later; public mirrors go down regularly
- Try another source:
~~~
$ swordctl refresh "eBible.org"
~~~

- Run with verbose mode for per-attempt details:
~~~
$ swordctl --verbose refresh <source>
~~~`,
	}

	indexCorruptIssue = &Issue{
		id: IndexCorruptId,
		mdMsg: `
# Corrupt module index!

The downloaded mods.d.tar.gz could not be decompressed or contained no
parseable module descriptors.

## Things you can try:
- Refresh again; the download may have been truncated
- Try another source, the mirror's index may be broken:
~~~
$ swordctl sources
$ swordctl refresh <other source>
~~~`,
	}

	packageNotAvailableIssue = &Issue{
		id: PackageNotAvailableId,
		mdMsg: `
# Package not available for download!

The module is listed in the source's index, but none of its candidate
package URLs exist on the server. Mirrors sometimes index modules whose
zip packages were never published.

## Things you can try:
- Install the module from a different source:
~~~
$ swordctl install "eBible.org" <module>
~~~

- Check the module ID spelling:
~~~
$ swordctl list <source> --search <module>
~~~`,
	}

	moduleNotInstalledIssue = &Issue{
		id: ModuleNotInstalledId,
		mdMsg: `
# Module not installed!

The module you named has no descriptor in mods.d, so there is nothing to
uninstall or verify.

## Things you can try:
- List what is actually installed:
~~~
$ swordctl installed
~~~

- Module IDs are matched case-insensitively, so casing is not the problem;
  check for typos instead`,
	}

	swordDirNotFoundIssue = &Issue{
		id: SwordDirNotFoundId,
		mdMsg: `
# SWORD directory not found!

The SWORD directory (usually ~/.sword) does not exist yet.

## Things you can try:
- Install any module; the directory tree is created on demand:
~~~
$ swordctl install CrossWire KJV
~~~

- Or point swordctl at an existing directory:
~~~
$ swordctl --sword-path /path/to/sword installed
~~~`,
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

A download failed after exhausting its retries.

## Common causes:
- Flaky network or mirror
- A proxy interfering with FTP data connections
- The server throttling anonymous clients

## Things you can try:
- Retry; transient mirror errors are common
- Raise the retry budget in your config:
~~~cue
download: {
  max_retries: 5
  timeout_seconds: 120
}
~~~

- Try another source`,
	}

	verifyFailedIssue = &Issue{
		id: VerifyFailedId,
		mdMsg: `
# Module verification failed!

An installed module's data directory is missing, empty, or does not match
the size its descriptor declares.

## Things you can try:
- Reinstall the module to repair it:
~~~
$ swordctl uninstall <module>
$ swordctl install <source> <module>
~~~

- See the full verification report:
~~~
$ swordctl verify
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		sourceNotFoundIssue.Id():      sourceNotFoundIssue,
		indexDownloadFailedIssue.Id(): indexDownloadFailedIssue,
		indexCorruptIssue.Id():        indexCorruptIssue,
		packageNotAvailableIssue.Id(): packageNotAvailableIssue,
		moduleNotInstalledIssue.Id():  moduleNotInstalledIssue,
		swordDirNotFoundIssue.Id():    swordDirNotFoundIssue,
		downloadFailedIssue.Id():      downloadFailedIssue,
		verifyFailedIssue.Id():        verifyFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
