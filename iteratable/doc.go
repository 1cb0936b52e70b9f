/*
Package iteratable implements iteratable container data structures.

Set is a special purpose set type, suitable mainly for implementing algorithms
around parser graphs, error-group aggregation and memo tables. These kinds of
algorithms are often more straightforward to describe as set constructions and
operations than as ad-hoc loops over slices.

Unusually, Union and Sort are destructive: they modify the receiver in place.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
Copyright © 2022–2026 RomeCore contributors

*/
package iteratable
