/*
suitebuild builds an RNA backbone onto phosphates, C1' atoms and bases.

Usage:
 suitebuild [options] atoms.txt probs.txt out.txt
 suitebuild [options] -s rotamers atoms.txt out.txt

The atom table has one atom per line,
 resnum resname atom x y z
and a line with just "break" where a chain is broken. Files may be
gzipped.

The likelihood table says how likely each rotamer is for each suite,
 resnum rotamer probability
where resnum is the nucleotide at the end of the suite. The most likely
chain of compatible rotamers is chosen. With -s, the rotamers are given
on the command line, one per suite, like "1a1a1b" or "1a 1a 1b", and no
likelihood table is read.

Output is an atom table with all the atoms we have.

Flags:
  -c file
	toml file with settings. See the config package.
  -l file
	Write details of each nucleotide to file. "stdout" works.
  -r file
	Rotamer statistics, instead of the built in table.
  -s string
	Rotamer string.
*/
package main
