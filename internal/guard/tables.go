package guard

import "regexp"

// safeCommands is the platform-independent allowlist of base commands that
// are read-only or otherwise harmless on their own. A safe base command can
// still be escalated by a dangerous-pattern match on the full string.
var safeCommands = map[string]bool{
	"ls":       true,
	"dir":      true,
	"pwd":      true,
	"cd":       true,
	"echo":     true,
	"cat":      true,
	"head":     true,
	"tail":     true,
	"grep":     true,
	"find":     true,
	"which":    true,
	"whoami":   true,
	"id":       true,
	"date":     true,
	"env":      true,
	"printenv": true,
	"wc":       true,
	"sort":     true,
	"uniq":     true,
	"diff":     true,
	"file":     true,
	"stat":     true,
	"du":       true,
	"df":       true,
	"uname":    true,
	"hostname": true,
	"history":  true,
	"type":     true,
}

// dangerousPatterns are scanned against the full normalized command even
// when the base command is in the safe allowlist. Any match escalates to a
// critical block.
var dangerousPatterns = []*regexp.Regexp{
	// Recursive force deletion aimed at the filesystem root or home.
	regexp.MustCompile(`rm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)[a-z]*\s+(/(\s|$|\*)|~)`),
	// World-writable permission grants.
	regexp.MustCompile(`chmod\s+(-[a-z]+\s+)*777`),
	// Piping downloaded content into a shell interpreter.
	regexp.MustCompile(`(curl|wget)[^|]*\|\s*(sudo\s+)?(sh|bash|zsh|python\d?)\b`),
	// Redirection into raw block devices.
	regexp.MustCompile(`>\s*/dev/(sd[a-z]|hd[a-z]|nvme\d+)`),
	// Classic fork bomb.
	regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`),
}

// dangerousSubstrings are cross-platform signals of privilege escalation,
// destructive deletion, shutdown, or raw device writes. Matched against the
// normalized (lowercased) command string.
var dangerousSubstrings = []string{
	"rm -rf /",
	"rm -fr /",
	"sudo rm",
	"sudo su",
	"sudo -i",
	"su root",
	"mkfs",
	"dd if=",
	"shutdown",
	"reboot",
	"poweroff",
	"halt -f",
	"init 0",
	"init 6",
	"kill -9 1",
	"killall -9",
	"> /dev/sda",
	"of=/dev/",
}

// shellMetacharacters indicate command composition or injection. Their
// presence alone is not a block, but unknown composition always asks.
var shellMetacharacters = []string{
	"&&",
	"||",
	";",
	"|",
	"`",
	"$(",
	"${",
	">>",
	">",
	"2>",
	"<",
}

// restrictedCommand pairs a base command with the risk level its table
// assigns when matched exactly.
type restrictedCommand struct {
	command string
	risk    RiskLevel
}

// platformRules is one OS family's rule table: blocked entries are
// substring matches on the normalized command, restricted entries are exact
// base-command matches that require confirmation.
type platformRules struct {
	blocked    []string
	restricted []restrictedCommand
}

// commandRules is the per-platform command rule table, keyed by GOOS,
// populated once at startup.
var commandRules = map[string]platformRules{
	"darwin": {
		blocked: []string{
			"diskutil erasedisk",
			"diskutil erasevolume",
			"csrutil disable",
			"spctl --master-disable",
			"nvram -c",
		},
		restricted: []restrictedCommand{
			{"brew", RiskMedium},
			{"defaults", RiskMedium},
			{"xcode-select", RiskMedium},
			{"launchctl", RiskHigh},
			{"osascript", RiskHigh},
			{"diskutil", RiskHigh},
		},
	},
	"windows": {
		blocked: []string{
			"format c:",
			"del /f /s /q c:\\",
			"rd /s /q c:\\",
			"reg delete hklm",
			"vssadmin delete shadows",
			"bcdedit /set",
			"cipher /w",
		},
		restricted: []restrictedCommand{
			{"powershell", RiskMedium},
			{"net", RiskMedium},
			{"taskkill", RiskMedium},
			{"reg", RiskHigh},
			{"sc", RiskHigh},
			{"schtasks", RiskHigh},
		},
	},
	"linux": {
		blocked: []string{
			"mkfs.",
			"fdisk /dev",
			"parted /dev",
			"insmod",
			"rmmod",
			"iptables -f",
			"iptables --flush",
		},
		restricted: []restrictedCommand{
			{"apt", RiskMedium},
			{"apt-get", RiskMedium},
			{"yum", RiskMedium},
			{"dnf", RiskMedium},
			{"pacman", RiskMedium},
			{"service", RiskMedium},
			{"crontab", RiskMedium},
			{"systemctl", RiskHigh},
			{"mount", RiskHigh},
			{"umount", RiskHigh},
			{"modprobe", RiskHigh},
		},
	},
}

// blockedPaths lists OS-critical system directories that no operation may
// touch, keyed by GOOS. Prefix-matched against resolved paths.
var blockedPaths = map[string][]string{
	"darwin": {
		"/System",
		"/Library/LaunchDaemons",
		"/Library/Extensions",
		"/private/etc",
		"/private/var/db",
		"/usr/bin",
		"/usr/sbin",
		"/bin",
		"/sbin",
	},
	"windows": {
		`c:\windows`,
		`c:\program files`,
		`c:\program files (x86)`,
		`c:\programdata`,
	},
	"linux": {
		"/boot",
		"/etc",
		"/proc",
		"/sys",
		"/dev",
		"/usr/bin",
		"/usr/sbin",
		"/bin",
		"/sbin",
		"/lib",
		"/var/lib",
	},
}

// sensitivePathSuffixes are home-relative directories holding credentials
// and keys. Reads are tolerated (tools legitimately inspect configs);
// writes and deletes are rejected.
var sensitivePathSuffixes = []string{
	".ssh",
	".gnupg",
	".aws",
	".azure",
	".kube",
	".docker",
	".config/gcloud",
}
