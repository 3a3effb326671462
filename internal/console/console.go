// Package console implements the control-surface command grammar: one
// whitespace-separated command per line, human-readable responses, driving
// a Scheduler's admin API directly.
package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hakeris1010/odmrp-sim/internal/scheduler"
	"github.com/hakeris1010/odmrp-sim/internal/simerr"
)

// Console dispatches one command line at a time against a Scheduler.
type Console struct {
	sched *scheduler.Scheduler
}

// New returns a Console driving sched.
func New(sched *scheduler.Scheduler) *Console {
	return &Console{sched: sched}
}

// Dispatch parses and executes one command line, returning the
// human-readable response and whether the caller should stop reading
// further commands (the `exit`/`e` command).
func (c *Console) Dispatch(line string) (response string, exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "add", "a":
		return c.add(args), false
	case "remove":
		return c.remove(args), false
	case "connect", "c":
		return c.connect(args), false
	case "query", "q":
		return c.query(args), false
	case "list", "l":
		return c.list(), false
	case "send", "s":
		return c.send(args), false
	case "route", "ro":
		return c.route(args), false
	case "help", "h":
		return helpText, false
	case "exit", "e":
		return "bye", true
	default:
		return fmt.Sprintf("error: unknown command %q (try 'help')", cmd), false
	}
}

const helpText = `commands:
  add|a -ip IP [-ms IP] [-mg IP]... [-n IP]...   create a node
  remove IP                                      remove a node
  connect|c NODE_IP PEER_IP...                   add neighbors (symmetric)
  query|q IP                                     dump node state
  list|l                                         list nodes and neighbors
  send|s [-v] SRC DST [payload...]               originate an IP packet
  route|ro SRC DST                               look up a route
  help|h                                         this text
  exit|e                                        stop the console`

// flagArgs splits a token list into repeatable -flag value pairs, plus
// standalone boolean flags named in boolFlags, plus the remaining
// positional tokens in order.
func flagArgs(args []string, boolFlags map[string]bool) (flags map[string][]string, bools map[string]bool, positional []string) {
	flags = make(map[string][]string)
	bools = make(map[string]bool)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			positional = append(positional, a)
			continue
		}
		name := strings.TrimPrefix(a, "-")
		if boolFlags[name] {
			bools[name] = true
			continue
		}
		if i+1 >= len(args) {
			continue // malformed trailing flag with no value; ignored
		}
		i++
		flags[name] = append(flags[name], args[i])
	}
	return flags, bools, positional
}

func (c *Console) add(args []string) string {
	flags, _, _ := flagArgs(args, nil)
	ips := flags["ip"]
	if len(ips) == 0 {
		return errLine(simerr.ErrInputMismatch, "add requires -ip IP")
	}
	ip := ips[0]
	ms := ""
	if len(flags["ms"]) > 0 {
		ms = flags["ms"][0]
	}

	if _, err := c.sched.AddNode(ip, ms); err != nil {
		return errLine(err, "add "+ip)
	}

	var warnings []string
	for _, g := range flags["mg"] {
		if err := c.sched.JoinGroup(ip, g); err != nil {
			warnings = append(warnings, fmt.Sprintf("join group %s: %v", g, err))
		}
	}
	for _, peer := range flags["n"] {
		if err := c.sched.Connect(ip, peer); err != nil {
			warnings = append(warnings, fmt.Sprintf("connect to %s: %v", peer, err))
		}
	}
	if len(warnings) > 0 {
		return fmt.Sprintf("added %s with warnings: %s", ip, strings.Join(warnings, "; "))
	}
	return "added " + ip
}

func (c *Console) remove(args []string) string {
	if len(args) != 1 {
		return errLine(simerr.ErrInputMismatch, "remove requires exactly one IP")
	}
	if err := c.sched.RemoveNode(args[0]); err != nil {
		return errLine(err, "remove "+args[0])
	}
	return "removed " + args[0]
}

func (c *Console) connect(args []string) string {
	if len(args) < 2 {
		return errLine(simerr.ErrInputMismatch, "connect requires NODE_IP and at least one PEER_IP")
	}
	node := args[0]
	var warnings []string
	for _, peer := range args[1:] {
		if err := c.sched.Connect(node, peer); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", peer, err))
		}
	}
	if len(warnings) > 0 {
		return "connect completed with errors: " + strings.Join(warnings, "; ")
	}
	return "connected " + node
}

func (c *Console) query(args []string) string {
	if len(args) != 1 {
		return errLine(simerr.ErrInputMismatch, "query requires exactly one IP")
	}
	n, err := c.sched.Node(args[0])
	if err != nil {
		return errLine(err, "query "+args[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "node %s\n", n.IPAddress())
	fmt.Fprintf(&b, "  down: %v\n", n.Down())
	fmt.Fprintf(&b, "  multicast source: %q\n", n.MulticastSource())
	fmt.Fprintf(&b, "  neighbors: %s\n", strings.Join(sortedCopy(n.Neighbors()), ", "))
	fmt.Fprintf(&b, "  groups: %s\n", strings.Join(sortedCopy(n.Groups()), ", "))
	fmt.Fprintf(&b, "  receivers: %s\n", strings.Join(sortedCopy(n.Receivers()), ", "))

	fmt.Fprintf(&b, "  routes:\n")
	for _, e := range n.Routes().Routes.Entries() {
		fmt.Fprintf(&b, "    %s via %s cost %d\n", e.Destination, e.NextHop, e.Cost)
	}

	now := n.Now()
	fmt.Fprintf(&b, "  forwarding groups:\n")
	for _, e := range n.Forwarding().Entries() {
		remaining, _ := n.Forwarding().MillisUntilExpiry(e.GroupID, now)
		fmt.Fprintf(&b, "    %s expires in %dms\n", e.GroupID, remaining)
	}
	fmt.Fprintf(&b, "  message cache: %d/%d\n", n.Cache().Len(), n.Cache().Capacity())
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) list() string {
	entries := c.sched.List()
	sort.Slice(entries, func(i, j int) bool { return entries[i].IPAddress < entries[j].IPAddress })

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s\n", e.IPAddress, strings.Join(sortedCopy(e.Neighbors), ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) send(args []string) string {
	_, bools, positional := flagArgs(args, map[string]bool{"v": true})
	if len(positional) < 2 {
		return errLine(simerr.ErrInputMismatch, "send requires SRC and DST")
	}
	src, dst := positional[0], positional[1]
	payload := strings.Join(positional[2:], " ")

	if err := c.sched.SendPacket(src, dst, []byte(payload), bools["v"]); err != nil {
		return errLine(err, fmt.Sprintf("send %s -> %s", src, dst))
	}
	return fmt.Sprintf("sent %s -> %s", src, dst)
}

func (c *Console) route(args []string) string {
	if len(args) != 2 {
		return errLine(simerr.ErrInputMismatch, "route requires SRC and DST")
	}
	src, dst := args[0], args[1]
	entry, err := c.sched.Route(src, dst)
	if err != nil {
		return errLine(err, fmt.Sprintf("route %s -> %s", src, dst))
	}
	return fmt.Sprintf("%s -> %s: next hop %s, cost %d", src, dst, entry.NextHop, entry.Cost)
}

func errLine(err error, context string) string {
	return fmt.Sprintf("error: %s: %v", context, err)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
